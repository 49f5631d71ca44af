// Package document defines the serialisable form of a flow layout job and
// its result.
//
// # Documents
//
// A [Document] names the boxes to lay out together with the layout
// parameters:
//
//	{
//	  "name": "tags",
//	  "alignment": "center",
//	  "spacing": 8,
//	  "width": 393,
//	  "boxes": [
//	    {"id": "go", "width": 48, "height": 40},
//	    {"id": "rust", "label": "Rust", "width": 64, "height": 40, "h_spacing": 4}
//	  ]
//	}
//
// Omitting "spacing" selects negotiated spacing, in which case each box's
// h_spacing and v_spacing preferences (default 8) decide the gaps. Omitting
// "width" measures against the natural width of a single row.
//
// The same structure can be written as TOML; [ReadFile] selects the codec
// from the file extension. Documents also carry BSON tags for the Mongo
// backed store.
//
// # Results
//
// A [Result] is the outcome of measuring and placing a document: the
// measured size, one [Placement] per box in input order and the number of
// rows. Results are what the pipeline caches and the renderers consume.
package document
