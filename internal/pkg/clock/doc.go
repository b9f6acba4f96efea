// Package clock lets expiry and cooldown logic run against a controllable
// time source. Tests use Manual; everything else uses New.
package clock
