// machine - create and query DigitalOcean droplets.
package main

func main() {
	Execute()
}
