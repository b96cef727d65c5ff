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

// Package statsview is a wrapper for the github.com/go-echarts/statsview
// package. It shows the memory and goroutine behaviour of the running
// cartridge, which is useful when tuning the backing store timings.
//
// The server is only available when sdcart is built with the "statsview"
// build tag:
//
//	go build -tags=statsview
//
// Launch() is safe to call in either case. The Available() function can be
// used to check whether the server will run.
package statsview

// Address of the stats server.
const Address = "localhost:12780"
