/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: target.go
Description: Crashable demo target for the Kyra Fuzzer. Reads input from
stdin or a file argument and walks branchy parsing code with a handful of
reachable faults, useful for trying the engine end to end.
*/

package main

import (
	"fmt"
	"io"
	"os"
)

// parseHeader inspects the input and takes one of several paths. The KYRA
// magic plus a crash opcode triggers a real fault so crash detection,
// deduplication, and replay can be exercised.
func parseHeader(data []byte) {
	if len(data) < 4 {
		return
	}
	if string(data[:4]) != "KYRA" {
		if data[0] == 0xFF && data[1] == 0x00 {
			fmt.Println("raw path")
		}
		return
	}
	if len(data) < 5 {
		fmt.Println("magic only")
		return
	}

	switch data[4] {
	case 'N':
		var p *int
		fmt.Println(*p)
	case 'I':
		small := make([]byte, 2)
		fmt.Println(small[len(data)])
	case 'P':
		panic("demo target: explicit panic opcode")
	case 'L':
		for {
		}
	default:
		fmt.Printf("opcode 0x%02X path\n", data[4])
	}
}

func main() {
	var input []byte
	var err error
	if len(os.Args) > 1 {
		input, err = os.ReadFile(os.Args[1])
	} else {
		input, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to read input:", err)
		os.Exit(1)
	}
	parseHeader(input)
}
