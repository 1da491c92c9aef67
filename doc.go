// Copyright ©2024 The GraphOptim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package graphoptim estimates a globally consistent set of 3D camera
// orientations from a set of noisy pairwise relative rotation
// measurements — the rotation-averaging stage of structure-from-motion.
//
// The input is a graph whose vertices are views (cameras) and whose edges
// carry a measured relative rotation between the two endpoints; the output
// is one absolute rotation per view in a common world frame, with one view
// held fixed to resolve the global gauge.
//
// Three estimators share the types declared in this root package:
//
//   - l1rotation: an ADMM-based L1 global estimator, robust to outliers.
//   - irls: a reweighted-least-squares local refiner.
//   - dualrotation: a Lagrange-dual (SDP relaxation) global estimator.
//
// hybrid composes an initializer (L1 or SDP) with the IRLS refiner.
package graphoptim
