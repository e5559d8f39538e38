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

// Package header provides the envelope shared by chdiag documents.
//
// Serialized form:
//
//	kind: DiagnosticsReport
//	apiVersion: chdiag.nvidia.com/v1alpha1
//	metadata:
//	  id: 4b1c8c9e-0d5b-4f0e-9a53-2d0c4f3f8a11
//	  timestamp: "2025-12-30T10:30:00Z"
//	  version: v1.0.0
//
// The id is a random UUID assigned per collection run, so two reports of the
// same host can be told apart after they have been shipped off the machine.
package header
