// Command callscope explores the call graph of an ARM64 binary one function
// at a time and exports it as SVG, PNG or Graphviz DOT.
package main

func main() {
	Execute()
}
