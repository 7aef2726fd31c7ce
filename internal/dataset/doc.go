// Package dataset resolves fundus cases on disk and decodes their images.
//
// A case is identified by a short string such as "01_h". Each case has three
// images, one per Role:
//
//	Photograph         {PicturesDir}/{case}{PictureExt}           Files/pictures/01_h.jpg
//	FieldOfViewMask    {MasksDir}/{case}{MaskSuffix}{DetailsExt}   Files/masks/01_h_mask.tif
//	ExpertAnnotation   {ExpertDir}/{case}{DetailsExt}              Files/expert_results/01_h.tif
//
// Decoding supports JPEG, PNG, GIF, TIFF and BMP. Every decoded image is
// returned as a 3-channel BGR imaging.Grid, matching how the photographs are
// processed downstream; masks and annotations are expanded to three equal
// channels.
//
// # Error Handling
//
// A missing, unreadable or undecodable file is reported as a *DecodeError that
// names the case and the role. Loaders never return a nil grid with a nil error.
package dataset
