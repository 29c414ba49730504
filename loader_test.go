package qsteg

import (
	"testing"

	"github.com/pkg/errors"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/afero"
)

func TestLoader(t *testing.T) {
	Convey("Given a filesystem without the sample file", t, func() {
		fs := afero.NewMemMapFs()
		loader := NewLoader(fs, DefaultSamplePath, DefaultSampleContent)

		content, created, err := loader.Load()

		Convey("It should create the file with the demo content", func() {
			So(err, ShouldBeNil)
			So(created, ShouldBeTrue)
			So(content, ShouldEqual, DefaultSampleContent)

			onDisk, err := afero.ReadFile(fs, DefaultSamplePath)
			So(err, ShouldBeNil)
			So(string(onDisk), ShouldEqual, DefaultSampleContent)
		})

		Convey("A second load should reuse the file", func() {
			_, created, err := loader.Load()
			So(err, ShouldBeNil)
			So(created, ShouldBeFalse)
		})
	})

	Convey("Given a sample file with different content", t, func() {
		fs := afero.NewMemMapFs()
		So(afero.WriteFile(fs, DefaultSamplePath, []byte("secret"), 0o644), ShouldBeNil)

		content, created, err := NewLoader(fs, DefaultSamplePath, DefaultSampleContent).Load()

		Convey("It should read what is there and leave it alone", func() {
			So(err, ShouldBeNil)
			So(created, ShouldBeFalse)
			So(content, ShouldEqual, "secret")
		})
	})

	Convey("Given a read-only filesystem without the file", t, func() {
		fs := afero.NewReadOnlyFs(afero.NewMemMapFs())

		_, _, err := NewLoader(fs, DefaultSamplePath, DefaultSampleContent).Load()

		Convey("Bootstrapping should fail as an input error", func() {
			So(errors.Is(err, ErrInput), ShouldBeTrue)

			var se *StageError
			So(errors.As(err, &se), ShouldBeTrue)
			So(se.Stage, ShouldEqual, StageLoad)
		})
	})
}
