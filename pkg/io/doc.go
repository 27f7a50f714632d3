// Package io provides JSON import and export for dungeon layouts.
//
// # Overview
//
// A layout document holds a flat table of cells and a nested Area tree that
// refers to cells by id. Each cell payload is written exactly once, so the
// tree stays small and an Area can never carry a stale copy of a cell.
//
// # JSON Format
//
//	{
//	  "version": 1,
//	  "next_cell_id": 3,
//	  "cells": [
//	    {"id": 1, "content_id": 256, "position": [1, 2, 3],
//	     "rotation": [0, 0, 0, 1], "scale": [1, 1, 1]},
//	    {"id": 2, "content_id": 257, "position": [0, 0, 0],
//	     "rotation": [0, 0, 0, 1], "scale": [2, 1, 1]}
//	  ],
//	  "root": {
//	    "name": "Root", "position": [0, 0, 0], "rotation": [0, 0, 0, 1],
//	    "scale": [1, 1, 1], "cell_ids": [],
//	    "children": [
//	      {"name": "Wing1", "position": [0, 0, 0], "rotation": [0, 0, 0, 1],
//	       "scale": [1, 1, 1], "cell_ids": [1, 2], "children": []}
//	    ]
//	  }
//	}
//
// Rotations are quaternions in x, y, z, w order. cell_ids lists only the
// cells placed directly in an Area, not those of its descendants.
//
// # Versioning
//
// Documents carry a version field. Readers reject versions other than
// [Version] instead of guessing at their meaning.
//
// # Ids
//
// next_cell_id is persisted. On import the counter is reseeded to the
// larger of that value and one past the highest cell id present, so a
// reloaded layout never hands out an id it already used.
//
// # Import
//
// Use [ImportJSON] to read a layout from a file path, or [ReadJSON] to read
// from any io.Reader:
//
//	l, err := io.ImportJSON("crypt.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Malformed documents fail loudly with a coded error from the errors
// package rather than producing a partial or empty layout.
//
// # Export
//
// Use [ExportJSON] to write to a file, or [WriteJSON] for any io.Writer.
// Layouts whose registry and Area tree disagree are refused before anything
// is written, so every document this package writes can be read back.
package io
