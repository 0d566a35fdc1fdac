package session

import "github.com/dgnsrekt/documentarian/internal/oembed"

// SampleMetadata describes the built-in sample video.
var SampleMetadata = oembed.VideoMetadata{
	Title:        "Sample: Stellar Phone X Review",
	AuthorName:   "TechFlow",
	ThumbnailURL: "https://images.unsplash.com/photo-1511707171634-5f897ff02aa9?q=80&w=800&auto=format&fit=crop",
}

// SampleTranscript is a product review transcript used by the sample action.
const SampleTranscript = `(Music)
Hello everyone and welcome back to TechFlow! Today, we're taking a look at the brand new "Stellar Phone X". This is a device that's been hyped up for months, and we finally have our hands on it. Let's dive in and see if it lives up to the expectations.

First, let's talk about the design. The Stellar Phone X features a gorgeous matte glass back that feels premium and resists fingerprints quite well. The frame is made of polished titanium, which gives it a solid, durable feel. It's surprisingly light for its size. The display is a 6.7-inch Super Retina ZDR panel, and it is absolutely stunning. The colors are vibrant, the blacks are deep, and the 120Hz ProMotion technology makes scrolling incredibly smooth. It's one of the best displays I've ever seen on a smartphone.

Now, let's talk about performance. Under the hood, the Stellar Phone X is powered by the new A20 Bionic chip. This thing is a beast. Apps open instantly, multitasking is seamless, and graphically intensive games run without a single stutter. We ran some benchmarks, and it blows every other phone out of the water. This is a level of performance that honestly feels like overkill for most users right now, but it's great for future-proofing.

But what about the cameras? This is where things get really exciting. The main sensor is now a 50-megapixel lens that captures incredible detail and performs amazingly in low light. The new "Photonic Fusion" technology really enhances the dynamic range. The ultrawide camera is also improved, with better corner sharpness. And the telephoto lens now offers a 5x optical zoom, which is fantastic for getting closer to your subjects without losing quality. The video capabilities are also top-notch, with support for 8K recording and a new "Cinematic Action" mode that provides incredible stabilization.

Battery life has been a key focus for Stellar this year. With the A20 chip's efficiency improvements and a slightly larger battery, this phone can easily last a full day of heavy use. In our testing, we were consistently getting over 8 hours of screen-on time, which is very impressive. It also supports faster 45-watt wired charging and MagSafe for wireless charging.

So, what are the downsides? Well, the price is certainly one. Starting at $1199, this is not a cheap device. And while the software, a new version of CelestialOS, is clean and fast, it still lacks some of the customization options you might find on other platforms. Also, the removal of the physical SIM card slot in some regions might be an inconvenience for frequent travelers.

In conclusion, the Stellar Phone X is an incredible piece of technology. It has a stunning design, a class-leading display, unparalleled performance, and a truly versatile and powerful camera system. The battery life is finally great. While the high price and some minor software limitations might deter some, if you're looking for the absolute best smartphone experience on the market right now, the Stellar Phone X is it.

Thanks for watching! If you enjoyed this video, please give it a thumbs up and subscribe to TechFlow for more content like this. Let us know in the comments what you think about the new Stellar Phone X!
(Music)`
