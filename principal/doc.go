// Package principal exposes the identity carried by a verified token through
// the MicroProfile JWT accessor surface.
package principal
