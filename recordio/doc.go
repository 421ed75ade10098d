// Package recordio reads files written by Fortran unformatted sequential I/O.
//
// Every record in such a file is a payload bracketed by two length markers.
// The marker holds the payload length as a signed integer and is repeated
// after the payload, so a reader can validate each record as it goes:
//
//	record := marker payload marker
//	file   := record*
//
// Markers are 4 bytes wide by default and use the byte order of the machine
// that wrote the file. Both can be changed with options.
//
// Basic usage:
//
//	r, err := recordio.Open("fort.10")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer r.Close()
//
//	for rec, err := range r.Records() {
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    header, err := recordio.Decode[int32](rec, 3)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(header)
//	}
//
// Next reports the clean end of a file as io.EOF. A file that stops inside a
// marker or payload, or whose markers disagree, produces one of the framing
// errors below instead.
package recordio
