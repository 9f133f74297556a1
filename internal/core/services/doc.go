// Package services implements the driving port interfaces.
// Services contain the core pipeline logic and orchestrate
// calls to driven ports (adapters).
//
// Services are pure Go; storage and AI providers stay behind
// driven ports so they can be swapped without touching logic here.
package services
