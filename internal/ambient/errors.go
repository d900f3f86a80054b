// SPDX-License-Identifier: BSD-3-Clause

package ambient

import "errors"

// ErrRead indicates the underlying sensor driver failed to produce a
// reading after exhausting its retry budget.
var ErrRead = errors.New("ambient: sensor read failed")
