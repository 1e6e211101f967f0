// Package scene loads world descriptions from YAML or TOML files and builds
// them through the bridge accessors.
//
//	bodies:
//	  - name: ground
//	    type: static
//	    fixtures:
//	      - shape: {type: edge, vertices: [[-20, 0], [20, 0]]}
//	  - name: ball
//	    position: [0, 4]
//	    fixtures:
//	      - shape: {type: circle, radius: 0.5}
//	        density: 1
//	        restitution: 0.5
//
// Vectors are two-element lists. Shapes are circle, edge, chain, loop,
// polygon or box; joints name their bodies, and gear joints name two earlier
// joints. Limits and motors are applied after the joint is created.
//
// Watcher reports edits to scene files so a caller can rebuild its world.
package scene
