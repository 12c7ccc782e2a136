// Package hcl provides the concrete HCL implementation of the config.Loader
// interface. It is responsible for parsing catalog documents, decoding their
// blocks and converting list attributes from cty values to Go types.
package hcl
