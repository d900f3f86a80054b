// SPDX-License-Identifier: BSD-3-Clause

package config

import "errors"

// ErrParse wraps any failure to decode a configuration file. Per
// spec.md §7, a configuration parse failure is fatal at startup.
var ErrParse = errors.New("config: parse failure")
