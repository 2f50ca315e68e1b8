// Command accidentcast serves French road-accident forecasts over HTTP and manages the model
// artifacts behind them.
package main

func main() {
	Execute()
}
