// Copyright ©2024 The GraphOptim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package admm solves min_x ‖Ax − b‖₁ for a fixed sparse A via the
// Alternating Direction Method of Multipliers: one Cholesky factor of AᵀA
// computed at construction, then an iterative primal/dual update each
// call to Solve.
package admm
