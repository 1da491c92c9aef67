// Copyright ©2024 The GraphOptim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sparsechol adapts a sparse system assembled from the view graph
// (rows, columns of A fixed by the graph topology; only the numeric values
// change per iteration) to a reusable Cholesky factorization.
//
// Two phases: AnalyzePattern, run once at construction, which validates
// the system but keeps no symbolic structure, and Factorize, run once per
// ADMM/IRLS iteration, which refactors the weighted normal equations from
// scratch. Sparse matrix assembly and matrix-vector
// products, the operations repeated every iteration, go through
// github.com/james-bowman/sparse's CSR/COO types; the factorization
// itself, the one numerically delicate step, runs against a densified
// gonum mat.Cholesky. For the reduced 3(V-1) dimensional system of
// typical rotation-averaging problems this trades a constant
// densification cost for a well-tested LAPACK-backed factor.
package sparsechol
