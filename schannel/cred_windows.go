//go:build windows

// File: schannel/cred_windows.go
// Author: Derek Huang
// License: MIT
//
// Schannel credential handle acquisition. The SCHANNEL_CRED structure and
// its flag constants are declared here; x/sys and the sspi binding do not
// expose them.

package schannel

import (
	"fmt"
	"unsafe"

	"github.com/alexbrainman/sspi"
)

// UnispName is the security package implementing TLS.
const UnispName = "Microsoft Unified Security Protocol Provider"

// schannelCredVersion is the SCHANNEL_CRED structure version.
const schannelCredVersion = 4

// SCHANNEL_CRED dwFlags values.
const (
	SchCredNoDefaultCreds     uint32 = 0x00000010
	SchCredAutoCredValidation uint32 = 0x00000020
	SchUseStrongCrypto        uint32 = 0x00400000
)

// DefaultCredFlags is the credential flag set used for outbound TLS
// clients: strong crypto only, automatic server certificate validation,
// no default client certificate.
const DefaultCredFlags = SchUseStrongCrypto | SchCredAutoCredValidation | SchCredNoDefaultCreds

// schannelCred mirrors SCHANNEL_CRED from schannel.h.
type schannelCred struct {
	Version               uint32
	CredCount             uint32
	Creds                 uintptr
	RootStore             uintptr
	MapperCount           uint32
	Mappers               uintptr
	SupportedAlgCount     uint32
	SupportedAlgs         uintptr
	EnabledProtocols      uint32
	MinimumCipherStrength uint32
	MaximumCipherStrength uint32
	SessionLifespan       uint32
	Flags                 uint32
	CredFormat            uint32
}

// Credential owns an acquired Schannel credential handle and releases it
// exactly once.
type Credential struct {
	creds *sspi.Credentials
}

// AcquireCredential acquires an outbound TLS credential handle. A zero
// protocols value lets the provider negotiate; flags is a SCH_CRED_* mask,
// usually DefaultCredFlags.
func AcquireCredential(protocols, flags uint32) (*Credential, error) {
	sc := schannelCred{
		Version:          schannelCredVersion,
		EnabledProtocols: protocols,
		Flags:            flags,
	}
	creds, err := sspi.AcquireCredentials("", UnispName, sspi.SECPKG_CRED_OUTBOUND,
		(*byte)(unsafe.Pointer(&sc)))
	if err != nil {
		return nil, fmt.Errorf("failed to acquire schannel credentials: %w", err)
	}
	return &Credential{creds: creds}, nil
}

// Release frees the credential handle. Further calls are no-ops.
func (c *Credential) Release() error {
	if c.creds == nil {
		return nil
	}
	creds := c.creds
	c.creds = nil
	return creds.Release()
}
