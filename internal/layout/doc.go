// Package layout describes where the pixels of an installation are and
// feeds that description to an animation runtime.
//
// A layout file lists strips in output order. Each strip is either an
// explicit list of points or a straight line sampled evenly:
//
//	name: shelf
//	strips:
//	  - line: {from: [0, 0], to: [1, 0], count: 60}
//	  - points:
//	      - [0, 0.5]
//	      - {x: 0.1, y: 0.5}
//	  - points: []        # an unlit strip keeps its channel slot
//
// Apply issues the layout calls (strip count, strip lengths, pixel
// locations) and finalizes the runtime. Layouts can also be stored by name
// in SQLite through Repository.
package layout
