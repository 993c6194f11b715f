// Package canvas reads and writes pipeline canvases in the JSON layout the
// Studio editor exports, and reads the same layout written as YAML.
//
// A canvas file looks like:
//
//	{
//	  "format_version": 1,
//	  "exported_unix_seconds": 1767225600,
//	  "start_node_id": "ingest",
//	  "nodes": [
//	    {"id": "ingest", "type": "ingest", "title": "Ingest",
//	     "canvas_x": 0, "canvas_y": 0, "config": {"dataset": "demo"}}
//	  ],
//	  "edges": [
//	    {"id": "e1", "source_node_id": "ingest", "target_node_id": "filter"}
//	  ]
//	}
package canvas
