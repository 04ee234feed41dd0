package utils

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func AllExist(paths []string) bool {
	for _, p := range paths {
		if !Exists(p) {
			return false
		}
	}
	return true
}

func GetUniqSubDir(parentPath string) (path string, err error) {
	path = filepath.Join(parentPath, uuid.NewString())
	err = os.Mkdir(path, os.ModePerm)
	return
}

func GetFilenameWithoutExt(path string) (name string) {
	name = filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(path))
	return
}
