// Copyright 2013 Seth Bunce. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
package boson

// Wire tags. Values are fixed for interoperability with other Boson
// implementations; never renumber these.
const (
	tagByte              = 1
	tagShort             = 2
	tagInt               = 3
	tagLong              = 4
	tagFloat             = 5
	tagDouble            = 6
	tagBoolean           = 7
	tagChar              = 8
	tagNull              = 9
	tagString            = 10
	tagArray             = 11
	tagList              = 12
	tagMap               = 13
	tagRecord            = 14
	tagReference         = 15
	tagSet               = 16
	tagEnum              = 17
	tagByteArray         = 18
	tagDate              = 19
	tagLocalDate         = 20
	tagLocalDateTime     = 21
	tagLocalTime         = 22
	tagDuration          = 23
	tagPeriod            = 24
	tagJodaDateTime      = 25
	tagJodaLocalDate     = 26
	tagJodaLocalTime     = 27
	tagJodaLocalDateTime = 28
	tagJodaDuration      = 29
	tagJodaInterval      = 30
	tagJodaPeriod        = 31
	tagUUID              = 32
)

// version is the single byte that prefixes every encoded message (I1).
const version = 1
