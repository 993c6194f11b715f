// Package hcl_adapter loads pipeline documents written in HCL.
//
// A document is any number of .hcl files. Each may hold node and edge blocks
// and at most one pipeline block across all files:
//
//	pipeline {
//	  name  = "demo"
//	  start = "ingest"
//	}
//
//	node "ingest" {
//	  type   = "ingest"
//	  title  = "Ingest raw text"
//	  config = {
//	    dataset = "demo"
//	    source  = "./raw"
//	  }
//	}
//
//	edge {
//	  from = "ingest"
//	  to   = "filter"
//	}
//
// Nodes keep their declaration order, file by file in lexical path order.
package hcl_adapter
