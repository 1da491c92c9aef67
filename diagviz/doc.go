// Copyright ©2024 The GraphOptim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package diagviz renders an iterative solver's per-iteration residual
// or step-size trace to a line chart, for interactive debugging and
// examples. Every ADMM/IRLS/SDP iteration already logs (iter, residual,
// step size) at the INFO level; diagviz exists for the times a plotted
// curve is more useful than a scrollback of log lines. Nothing in the
// solve path (admm, l1rotation, irls, sdp, dualrotation, hybrid) imports
// this package.
package diagviz
