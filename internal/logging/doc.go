// Package logging configures structured JSON logging for joinindex.
//
// Commands log to stderr by default. With --debug, logs are also written to a
// rotating file under ~/.joinindex/logs/ that `joinindex logs` can tail.
package logging
