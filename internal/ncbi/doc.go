// Package ncbi knows the two NCBI web services the agent is allowed to call:
// E-utilities (esearch, efetch, esummary over the gene, snp, and omim
// databases) and BLAST (a two-phase Put/Get alignment job API).
//
// URLs are classified by host, path, and the BLAST CMD parameter. Fetches go
// through Client, which applies the fixed pre-fetch delay NCBI asks callers
// to observe.
package ncbi
