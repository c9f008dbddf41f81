package kdf

import "encoding/binary"

// VersionLabel prefixes every labeled derivation.
const VersionLabel = "HPKE-v1"

// LabeledExtract computes Extract(salt, "HPKE-v1" || suiteID || label || ikm).
func (k *KDF) LabeledExtract(suiteID, salt []byte, label string, ikm []byte) []byte {
	labeledIKM := make([]byte, 0, len(VersionLabel)+len(suiteID)+len(label)+len(ikm))
	labeledIKM = append(labeledIKM, VersionLabel...)
	labeledIKM = append(labeledIKM, suiteID...)
	labeledIKM = append(labeledIKM, label...)
	labeledIKM = append(labeledIKM, ikm...)

	prk := k.Extract(salt, labeledIKM)
	clear(labeledIKM)
	return prk
}

// LabeledExpand computes Expand(prk, I2OSP(length, 2) || "HPKE-v1" || suiteID || label || info, length).
func (k *KDF) LabeledExpand(suiteID, prk []byte, label string, info []byte, length int) ([]byte, error) {
	if length < 0 || length > k.MaxExpandLength() {
		return k.Expand(prk, nil, length)
	}

	labeledInfo := make([]byte, 2, 2+len(VersionLabel)+len(suiteID)+len(label)+len(info))
	binary.BigEndian.PutUint16(labeledInfo, uint16(length))
	labeledInfo = append(labeledInfo, VersionLabel...)
	labeledInfo = append(labeledInfo, suiteID...)
	labeledInfo = append(labeledInfo, label...)
	labeledInfo = append(labeledInfo, info...)

	return k.Expand(prk, labeledInfo, length)
}

// KEMSuiteID returns "KEM" || I2OSP(kemID, 2), the suite identifier used
// inside a DH-based KEM.
func KEMSuiteID(kemID uint16) []byte {
	id := []byte("KEM\x00\x00")
	binary.BigEndian.PutUint16(id[3:], kemID)
	return id
}

// HPKESuiteID returns "HPKE" || I2OSP(kemID, 2) || I2OSP(kdfID, 2) || I2OSP(aeadID, 2).
func HPKESuiteID(kemID, kdfID, aeadID uint16) []byte {
	id := []byte("HPKE\x00\x00\x00\x00\x00\x00")
	binary.BigEndian.PutUint16(id[4:], kemID)
	binary.BigEndian.PutUint16(id[6:], kdfID)
	binary.BigEndian.PutUint16(id[8:], aeadID)
	return id
}
