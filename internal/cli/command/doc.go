// Package command defines the fxtoken command-line interface.
//
// Token commands (encode, seal, decode, seed, fingerprint, kinds) run
// locally. Access, export and admin commands call an fxgallery server.
package command
