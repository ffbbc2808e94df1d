// Copyright 2018 GRAIL, Inc. All rights reserved.
// Use of this source code is governed by the Apache 2.0
// license that can be found in the LICENSE file.

// Package bam provides zero-copy accessors for the sam.Record fields that
// read decoding needs, on top of github.com/grailbio/hts.
package bam
