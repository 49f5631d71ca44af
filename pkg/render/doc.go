// Package render turns placed layout results into output artifacts.
//
// # Formats
//
// A [document.Result] can be rendered as:
//
//   - SVG ([RenderSVG]): boxes drawn as rounded rectangles with optional
//     labels and a bounds frame, styled by a [Style]
//   - DOT ([ToDOT]): a Graphviz document with every box pinned at its
//     placed position, rendered to SVG or PNG with [RenderDOT]
//   - JSON ([RenderJSON]): the result itself, indented
//   - Text ([RenderText]): a character grid, one cell per CellWidth by
//     CellHeight units, used by the terminal preview
//
// [Render] dispatches on a format name and is what the pipeline and the
// HTTP API call.
//
// # Styles
//
// [Simple] fills boxes from a palette that cycles by row and picks a
// black or white label colour for contrast. [Outline] draws white boxes
// with a dark stroke.
//
//	svg := render.RenderSVG(res, render.WithStyle(render.Outline{}), render.WithLabels())
package render
