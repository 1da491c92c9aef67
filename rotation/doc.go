// Copyright ©2024 The GraphOptim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package rotation provides axis-angle rotation primitives used across the
// rotation-averaging estimators: conversion to and from 3×3 rotation
// matrices, on-manifold composition, and the small tangent-space updates
// that every estimator applies to the current global rotation estimate.
//
// Rotations are never carried around as 9-float matrices in estimator
// state; axis-angle (r3.Vec, direction = axis, magnitude = angle in
// radians) is the only resident representation. Conversion to a matrix is
// scoped to the places that actually need one: composing two rotations, or
// assembling a block of the SDP covariance matrix.
package rotation
