// SPDX-License-Identifier: Unlicense OR MIT

package subrandr

import "github.com/subrandr/subrandr/selector"

// Context is the rendering context (§6): DPI and video frame geometry
// every anchor and layout computation is resolved against. It is a
// type alias for selector.Context so callers never need to import
// that package directly; selector owns the definition to avoid an
// import cycle (selector is a dependency of this package, not the
// reverse).
type Context = selector.Context
