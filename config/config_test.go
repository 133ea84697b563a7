package config

import (
	"testing"

	"github.com/nagare-player/nagare/filesystem"
	"github.com/nagare-player/nagare/key"
	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/viper"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestSetup(t *testing.T) {
	Convey("Config Setup", t, func() {
		Convey("Should initialize without error", func() {
			err := Setup()
			So(err, ShouldBeNil)
		})

		Convey("Should have default values populated", func() {
			_ = Setup()
			for name := range Default {
				val := viper.Get(name)
				So(val, ShouldNotBeNil)
			}
		})

		Convey("Should register the expected number of fields", func() {
			So(len(Default), ShouldEqual, key.DefinedFieldsCount)
		})

		Convey("EnvKeyReplacer should convert dots to underscores", func() {
			result := EnvKeyReplacer.Replace("engine.pipeline")
			So(result, ShouldEqual, "engine_pipeline")
		})

		Convey("Env name should carry the application prefix", func() {
			field := Default[key.ServerURL]
			So(field.Env(), ShouldEqual, "NAGARE_SERVER_URL")
		})
	})
}
