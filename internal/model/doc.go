// Package model contains the interfaces shared by the medium packages.
//
// The following list summarizes the content of this package:
//
// - logger.go: definition of an apex/log compatible logger;
//
// - netx.go: network interfaces used to create the relay endpoints.
package model
