// Copyright ©2024 The GraphOptim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package dualrotation is the Lagrange-dual (SDP) global rotation
// estimator: it assembles the 3V×3V block covariance matrix from the
// relative rotation measurements, hands it to an sdp.Solver backend,
// recovers per-view rotations from the solver's low-rank factor (with
// the O(3)→SO(3) determinant-sign fixup), and reports an a-posteriori
// error bound derived from the view graph's Laplacian spectrum.
package dualrotation
