// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pcq

import (
	"errors"

	"code.hybscloud.com/iox"
)

// ErrWouldBlock indicates the queue operation cannot proceed immediately.
//
// For TryPush: the queue is full (backpressure)
// For TryPop: the queue is empty (no data available)
//
// ErrWouldBlock is a control flow signal, not a failure. Producers and
// consumers hand it to their [Waiter] and retry; it never leaves a run.
//
// This is an alias for [iox.ErrWouldBlock] for ecosystem consistency.
var ErrWouldBlock = iox.ErrWouldBlock

// ErrInvalidConfig is wrapped by every error returned from [Config.Validate].
var ErrInvalidConfig = errors.New("pcq: invalid config")

// IsWouldBlock reports whether err indicates the operation would block.
// Delegates to [iox.IsWouldBlock] for wrapped error support.
func IsWouldBlock(err error) bool {
	return iox.IsWouldBlock(err)
}

// IsSemantic reports whether err is a control flow signal (not a failure).
// Delegates to [iox.IsSemantic].
func IsSemantic(err error) bool {
	return iox.IsSemantic(err)
}

// IsNonFailure reports whether err represents a non-failure condition.
// Returns true for nil or ErrWouldBlock.
// Delegates to [iox.IsNonFailure].
func IsNonFailure(err error) bool {
	return iox.IsNonFailure(err)
}
