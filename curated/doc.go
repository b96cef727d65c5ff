// This file is part of sdcart.
//
// sdcart is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// sdcart is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with sdcart.  If not, see <https://www.gnu.org/licenses/>.

// Package curated is a helper package for the plain Go language error type.
// Curated errors implement the error interface.
//
// Curated errors are created with the Errorf() function. This is similar to
// the Errorf() function in the fmt package. It takes a formatting pattern,
// placeholder values and returns an error.
//
// The Is() function can be used to check whether an error was created with a
// specific pattern. The pattern is how curated errors are told apart:
//
//	e := curated.Errorf(sdcard.DeviceTimeout, 10)
//
//	if curated.Is(e, sdcard.DeviceTimeout) {
//		fmt.Println("true")
//	}
//
// The Has() function is similar but checks if a pattern occurs somewhere in
// the error chain. The chain is made up of any error values that were passed
// as placeholder values to Errorf(). Curated errors also implement Unwrap()
// so the errors.Is() and errors.As() functions of the standard library see
// through them.
//
// The Error() function normalises the message so that adjacent duplicate
// parts are removed. This means that a function does not need to worry
// whether the error it is wrapping already carries the same prefix:
//
//	bridge: bridge: request outstanding
//
// is printed as:
//
//	bridge: request outstanding
//
// Parts of a message are separated by the sub-string ": ".
//
// Sentinel patterns should be stored as a const string in the package that
// creates the error, suitably named and commented.
package curated
