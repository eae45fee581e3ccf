// Command reportview serves embeddable report widgets and renders them from
// the command line.
package main

func main() {
	Execute()
}
