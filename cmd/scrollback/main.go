// Command scrollback keeps a bounded, word-wrapped history of a text
// stream and prints or displays it as it arrives.
package main

func main() {
	Execute()
}
