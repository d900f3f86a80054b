// SPDX-License-Identifier: BSD-3-Clause

package vent

import "errors"

// ErrInvalidThresholds is returned by New when the configured thresholds
// cannot prevent chatter (sensors_temp_off >= sensors_temp_on, or
// rig_temp_off >= rig_temp_on).
var ErrInvalidThresholds = errors.New("vent: off threshold must be strictly below on threshold")
