// Package internalcheck holds static policy tests over the HPKE packages
// that handle secret material. It has no exported API.
//
// The tests load the packages with golang.org/x/tools/go/packages and
// fail on constructs that compare secrets in variable time or format
// them as hex.
package internalcheck
