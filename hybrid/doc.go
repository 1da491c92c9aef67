// Copyright ©2024 The GraphOptim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package hybrid composes a global initializer — l1rotation or
// dualrotation — with irls local refinement, handing the refiner
// whatever state the initializer already built (the view index always;
// the sparse relative-rotation system too, when the initializer is
// l1rotation, which assembles the same system irls needs) so the
// refinement stage never redoes work the initializer already did.
package hybrid
