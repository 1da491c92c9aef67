// Copyright ©2024 The GraphOptim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sdp provides interchangeable backends for the semidefinite
// relaxation of rotation averaging: given the 3V×3V block covariance
// matrix R built from relative rotations, find Y ∈ ℝ^{d×3V} maximizing
// tr(R YᵀY) subject to each view's 3×3 column block of Y having
// orthonormal columns.
//
// RBRBCM and RankDeficientBCM share a row-by-row block coordinate descent
// core, differing only in the rank d of Y; RiemannianStaircase escalates
// rank from 3 upward, running the same per-view local optimization at
// each rank and stopping once a negative-semidefinite dual certificate
// proves the relaxation is tight.
//
// All three backends implement Solver, dispatched by New from a
// SolverType in Options — a tagged-enum construction rather than a
// factory per backend, per the polymorphic-SDP-solver design note.
package sdp
