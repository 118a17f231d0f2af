// Package audit builds the record kept for every admin notification attempt
// and hands it to sinks: the process log and, optionally, a Kafka topic.
package audit
