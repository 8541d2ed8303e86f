// Package viber is a client for the Viber REST bot API.
package viber
