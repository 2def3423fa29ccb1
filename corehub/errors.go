// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package corehub

import "github.com/helics/core/herrors"

func regFailure(name string) error {
	return herrors.RegistrationFailure("corehub: registration of %q failed or timed out", name)
}

func connFailure(format string, args ...any) error {
	return herrors.ConnectionFailure(format, args...)
}
