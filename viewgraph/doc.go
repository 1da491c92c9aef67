// Copyright ©2024 The GraphOptim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package viewgraph builds the stable view-id ↔ dense-index bijection that
// every estimator addresses its sparse systems with, and the undirected
// adjacency (degree sequence, graph Laplacian) the Lagrange-dual
// estimator's error bound needs.
//
// The anchor convention — dense index 0 is the gauge view whose rotation
// no estimator ever modifies — is made explicit here rather than left as
// an implicit contract: Index names its Anchor field, and estimators
// assert it instead of assuming it.
package viewgraph
