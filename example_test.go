// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package pcq_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"code.hybscloud.com/pcq"
)

// ExampleNewBounded shows the non-blocking push and pop contract.
func ExampleNewBounded() {
	q := pcq.NewBounded[int](2)

	for i := 1; i <= 3; i++ {
		v := i * 10
		if err := q.TryPush(&v); errors.Is(err, pcq.ErrWouldBlock) {
			fmt.Println("full, refused", v)
		}
	}

	for {
		v, err := q.TryPop()
		if err != nil {
			fmt.Println("empty")
			break
		}
		fmt.Println(v)
	}

	// Output:
	// full, refused 30
	// 10
	// 20
	// empty
}

// ExampleNewLedger claims values the way consumers do: first claim wins.
func ExampleNewLedger() {
	l := pcq.NewLedger(3)

	for _, v := range []int{2, 2, 3, 1} {
		order, ok := l.TryClaim(v - 1)
		if !ok {
			fmt.Printf("value %d: duplicate\n", v)
			continue
		}
		fmt.Printf("value %d: order %d complete=%v\n", v, order, l.IsComplete(order+1))
	}

	// Output:
	// value 2: order 1 complete=false
	// value 2: duplicate
	// value 3: order 2 complete=false
	// value 1: order 3 complete=true
}

// ExampleFormatProgress shows the console progress line.
func ExampleFormatProgress() {
	fmt.Println(pcq.FormatProgress(pcq.Progress{
		Value:   42,
		Order:   7,
		Latency: 1234 * time.Microsecond,
	}))

	// Output:
	// number = 00042, order = 00007, generation_time = 0001234
}

// ExampleBuilder_Run runs a small blocking round.
func ExampleBuilder_Run() {
	sum, err := pcq.New(100).
		Capacity(8).
		Blocking().
		Logger(quietLogger).
		Run(context.Background(), pcq.Discard)
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(sum.Complete, sum.Ledger.Claimed(), sum.Mode)

	// Output:
	// true 100 blocking
}
