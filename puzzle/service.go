// samurai.go - a Samurai Sudoku puzzle generator.
// Copyright (C) 2016 Daniel C. Brotsky.
//
// This program is free software; you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation; either version 2 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License along
// with this program; if not, write to the Free Software Foundation, Inc.,
// 51 Franklin Street, Fifth Floor, Boston, MA 02110-1301 USA.
// Licensed under the LGPL v3.  See the LICENSE file for details

package puzzle

import (
	"encoding/json"
	"fmt"
	"net/http"
)

/*

Error responses

*/

// WriteError sends e to the client as a JSON-encoded Error with a
// status appropriate to the error's place in the taxonomy, and
// returns the same Error to the golang caller.  Errors that are
// not taxonomy Errors should never reach this function; if one
// does, the client gets a 500 describing the formatting problem.
func WriteError(e error, w http.ResponseWriter, r *http.Request) error {
	err, ok := e.(Error)
	if !ok {
		return writeError(errorFormatError, ErrorData{"WriteError", e.Error()}, w, r)
	}
	err.Message = err.Error()
	return WriteJSON(err, statusFor(err), w, r)
}

// WriteDecodingError responds to an undecodable request body.
// The client gets a 400 with the decoder's complaint, and the
// golang caller gets the same Error back.
func WriteDecodingError(e error, w http.ResponseWriter, r *http.Request) error {
	return writeError(requestDecodingError, ErrorData{e.Error()}, w, r)
}

// WriteNotFound responds to a request for a resource that isn't
// there.  The client gets a 404 naming the request path and the
// missing thing, and the golang caller gets the same Error back.
func WriteNotFound(what string, w http.ResponseWriter, r *http.Request) error {
	return writeError(noResourceError, ErrorData{r.URL.Path, what}, w, r)
}

// statusFor maps a taxonomy Error to the HTTP status that should
// carry it.  Client-side scopes are 400s, missing resources are
// 404s, deadline expiries are 503s, and everything else is the
// server's fault.
func statusFor(err Error) int {
	if err.Attribute == URLAttribute {
		return http.StatusNotFound
	}
	switch err.Scope {
	case RequestScope, ArgumentScope, GeometryScope, GroupScope, SquareScope:
		return http.StatusBadRequest
	case SolveScope, CarveScope:
		if err.Condition == DeadlineExceededCondition {
			return http.StatusServiceUnavailable
		}
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}

/*

Utilities

*/

type handlerError int

const (
	requestDecodingError handlerError = iota
	responseEncodingError
	noResourceError
	errorFormatError
)

// writeError sends back a server error of the given type, sort
// of like http.Error, but it sends the JSON form of an
// appropriate Error.
func writeError(et handlerError, ed ErrorData,
	w http.ResponseWriter, r *http.Request) error {
	var err Error
	var status int
	switch et {
	case requestDecodingError:
		status = http.StatusBadRequest
		err = Error{
			Scope:     RequestScope,
			Structure: AttributeStructure,
			Attribute: DecodeAttribute,
			Condition: GeneralCondition,
			Values:    ed,
		}
	case responseEncodingError:
		status = http.StatusInternalServerError
		err = Error{
			Scope:     InternalScope,
			Structure: AttributeStructure,
			Attribute: EncodeAttribute,
			Condition: GeneralCondition,
			Values:    ed,
		}
	case noResourceError:
		status = http.StatusNotFound
		err = Error{
			Scope:     RequestScope,
			Structure: AttributeValueStructure,
			Attribute: URLAttribute,
			Condition: GeneralCondition,
			Values:    ed,
		}
	case errorFormatError:
		status = http.StatusInternalServerError
		err = Error{
			Scope:     InternalScope,
			Structure: AttributeStructure,
			Attribute: LocationAttribute,
			Condition: GeneralCondition,
			Values:    ed,
		}
	default:
		status = http.StatusInternalServerError
		err = Error{
			Scope:     InternalScope,
			Structure: AttributeStructure,
			Attribute: LocationAttribute,
			Condition: GeneralCondition,
			Values: ErrorData{
				"writeError",
				fmt.Sprintf("Unknown handler error type (%v)", et),
			},
		}
	}
	err.Message = err.Error()
	return WriteJSON(err, status, w, r)
}

// WriteJSON is called by handlers to encode and send the client
// response.  It returns an appropriate error status for the
// handler to return to its caller, as follows:
//
// 1. If WriteJSON encounters an encoding error sending the
// response, it will create an Error object describing the
// failure, encode that Error as a 500-series response to the
// client, and return that Error to the handler.
//
// 2. If no encoding error occurs, but the handler is sending an
// Error object as the response to the client, WriteJSON will
// return that same Error to the handler.
//
// 3. If no encoding error occurs, and the handler is sending a
// non-Error object as the response to the client, WriteJSON will
// return nil to the handler.
func WriteJSON(obj interface{}, status int, w http.ResponseWriter, r *http.Request) error {
	err, isErr := obj.(Error)
	bytes, e := json.Marshal(obj)
	if e != nil {
		if isErr && err.Scope == InternalScope && err.Attribute == EncodeAttribute {
			// We just failed to encode an Encoding error.  This
			// should never happen!!  If it did, it almost
			// certainly means that the JSON encoding system is
			// dead, so pseudo-encode the error by hand by
			// returning the Error's summary as a quoted string.
			status = http.StatusInternalServerError // probably was already!
			bytes = []byte(fmt.Sprintf("%q", err.Error()))
		} else {
			// generate, send, and return an encoding error
			return writeError(responseEncodingError, ErrorData{e.Error()}, w, r)
		}
	}
	hs := w.Header()
	hs.Add("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(bytes)
	if isErr {
		return err
	}
	return nil
}
