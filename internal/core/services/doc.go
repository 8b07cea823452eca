// Package services implements the pipeline's business logic behind the
// driving ports: ingestion, hybrid retrieval with reciprocal-rank
// fusion, the bounded memo orchestrator, and the feedback loop. All
// infrastructure is reached through the driven port interfaces.
package services
