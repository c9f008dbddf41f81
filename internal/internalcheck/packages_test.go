package internalcheck

import (
	"testing"

	"golang.org/x/tools/go/packages"
)

// secretPackages handle keys, shared secrets or derived key material.
var secretPackages = []string{
	"github.com/vaultsandbox/hpke-go",
	"github.com/vaultsandbox/hpke-go/internal/aead",
	"github.com/vaultsandbox/hpke-go/internal/kdf",
	"github.com/vaultsandbox/hpke-go/internal/kem",
	"github.com/vaultsandbox/hpke-go/internal/schedule",
}

func loadSecretPackages(t *testing.T, mode packages.LoadMode) []*packages.Package {
	t.Helper()
	cfg := &packages.Config{Mode: mode}

	pkgs, err := packages.Load(cfg, secretPackages...)
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}
	if packages.PrintErrors(pkgs) > 0 {
		t.Fatalf("packages contain errors")
	}
	if len(pkgs) != len(secretPackages) {
		t.Fatalf("loaded %d packages, want %d", len(pkgs), len(secretPackages))
	}
	return pkgs
}
