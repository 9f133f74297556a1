// Package connectors provides implementations of the Connector interface
// for document sources. The filesystem connector is the only built-in
// source: it scans a local directory and can watch it for changes.
package connectors
