// Copyright ©2024 The GraphOptim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package l1rotation is the L1 global rotation estimator: it builds the
// sparse relative-rotation system shared across the package, solves it
// with admm, and writes the result back into the caller's global
// rotations via on-manifold composition. It produces a robust initial
// estimate suitable for refinement by irls.
package l1rotation
