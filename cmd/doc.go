// Package cmd implements the twopence-nis CLI, an end-to-end validation
// driver for an NIS deployment. It connects to the server and client of a
// test deployment over SSH, rewrites binding and resolution configuration in
// place, and verifies that map lookups, system resolution, and PAM
// authentication behave correctly after each change. Outcomes are collected
// in a YAML report.
package cmd
