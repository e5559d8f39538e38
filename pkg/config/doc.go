// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads the preprocessed ClickHouse server configuration and
// renders it with secrets masked.
//
// The XML document is decoded into nested maps with clbanning/mxj. Repeated
// elements become slices and attributes are stored under "-name" keys.
//
//	cfg, err := config.Load(defaults.ConfigPath)
//	if err != nil {
//	    return err
//	}
//	text, err := cfg.DumpWith(config.NewMasker("access_key_id"))
//
// Masking always operates on a deep copy, so the loaded configuration can be
// dumped any number of times with different maskers.
package config
