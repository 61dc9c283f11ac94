package integrationtests

import (
	"fmt"
	"os"
	"strings"
	"testing"
)

func fileContainsStr(t *testing.T, file, str string) error {
	t.Log("Checking if file contains string", file, str)
	data, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	for _, line := range strings.Split(string(data), "\n") {
		if strings.Contains(line, str) {
			t.Log(line)
			return nil
		}
	}
	return fmt.Errorf("File %s does not contain string %s", file, str)
}

func fileNotContainsStr(t *testing.T, file, str string) error {
	if err := fileContainsStr(t, file, str); err == nil {
		return fmt.Errorf("File %s contains string %s", file, str)
	}
	return nil
}
