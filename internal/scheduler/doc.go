// Package scheduler paces the executor's poll loop: it decides how long the
// loop waits between status polls and is the single place the loop yields.
package scheduler
