// Copyright ©2024 The GraphOptim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package rotavgtest builds synthetic view-pair graphs with known ground
// truth rotations, shared by the estimator packages' end-to-end test
// scenarios (cycle-of-three, an inconsistent variant, a chain, a star,
// and a noisy complete graph).
package rotavgtest
