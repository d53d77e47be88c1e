// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pcq

import "code.hybscloud.com/atomix"

// Completion is the terminal signal of a run.
//
// It starts unset and is set at most once; once set it stays set. Producers
// and consumers poll Done on every loop iteration.
//
// The zero value is ready to use. A Completion must not be copied after
// first use.
type Completion struct {
	state atomix.Uint64
}

// Done reports whether the run has completed.
func (c *Completion) Done() bool {
	return c.state.LoadAcquire() != 0
}

// Set marks the run complete.
// Returns true only for the call that changed the state.
func (c *Completion) Set() bool {
	return c.state.CompareAndSwapAcqRel(0, 1)
}
