package db

import "os"

func exists(path string) (found bool) {
	_, err := os.Stat(path)
	return err == nil
}

func mkdir(dir string) (err error) {
	if _, err = os.Stat(dir); os.IsNotExist(err) {
		err = os.MkdirAll(dir, DIRMODE)
		if err != nil {
			return
		}
	}
	return
}
