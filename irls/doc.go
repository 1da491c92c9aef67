// Copyright ©2024 The GraphOptim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package irls is the iteratively reweighted least squares local refiner:
// it polishes a global rotation estimate by repeatedly computing
// tangent-space edge residuals, down-weighting the noisiest edges with a
// soft-ℓ½ loss, and solving a weighted least-squares step against the
// shared sparse relative-rotation system.
package irls
